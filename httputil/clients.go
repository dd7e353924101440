package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	Geocoding *http.Client // short timeout, one call per record
	Supabase  *http.Client // REST and storage APIs
}

func NewClients() *Clients {
	return &Clients{
		Geocoding: &http.Client{Timeout: 15 * time.Second},
		Supabase:  &http.Client{Timeout: 30 * time.Second},
	}
}
