package httpserver

import "net/http"

// Routes aggregates handlers for the HTTP server.
type Routes struct {
	Signup http.HandlerFunc
	Login  http.HandlerFunc
	Logout http.HandlerFunc

	Profile        http.HandlerFunc
	UpdateProfile  http.HandlerFunc
	ChangePassword http.HandlerFunc

	RecordReading http.HandlerFunc
	LastReading   http.HandlerFunc

	GenerateBill http.HandlerFunc
	ListBills    http.HandlerFunc
	Pay          http.HandlerFunc

	TaxReport       http.HandlerFunc
	ExportTaxReport http.HandlerFunc

	Notifications http.HandlerFunc
	Health        http.HandlerFunc
}

// NewRouter wires all HTTP routes; auth wraps every route that requires a
// logged-in user. The websocket endpoint authenticates itself via a token
// query parameter.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/auth/signup", method(http.MethodPost, routes.Signup))
	mux.Handle("/auth/login", method(http.MethodPost, routes.Login))
	mux.Handle("/auth/logout", auth(method(http.MethodPost, routes.Logout)))

	mux.Handle("/profile", auth(methods(map[string]http.HandlerFunc{
		http.MethodGet: routes.Profile,
		http.MethodPut: routes.UpdateProfile,
	})))
	mux.Handle("/profile/password", auth(method(http.MethodPost, routes.ChangePassword)))

	mux.Handle("/meter/readings", auth(method(http.MethodPost, routes.RecordReading)))
	mux.Handle("/meter/readings/last", auth(method(http.MethodGet, routes.LastReading)))

	mux.Handle("/bills", auth(methods(map[string]http.HandlerFunc{
		http.MethodGet:  routes.ListBills,
		http.MethodPost: routes.GenerateBill,
	})))
	mux.Handle("/payments", auth(method(http.MethodPost, routes.Pay)))

	mux.Handle("/reports/tax", auth(method(http.MethodGet, routes.TaxReport)))
	mux.Handle("/reports/tax/export", auth(method(http.MethodGet, routes.ExportTaxReport)))

	mux.Handle("/ws/notifications", method(http.MethodGet, routes.Notifications))
	mux.Handle("/health", method(http.MethodGet, routes.Health))

	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

func methods(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
