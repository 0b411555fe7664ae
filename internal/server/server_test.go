package server

import (
	"testing"

	"github.com/splkm97/lobbyserver/internal/config"
	"github.com/splkm97/lobbyserver/internal/roomreg"
	"github.com/splkm97/lobbyserver/internal/userreg"
)

func TestNewWiresDispatcherAndRegistries(t *testing.T) {
	cfg, err := config.Load(func(string) string { return "" })
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	users := userreg.New(nil)
	rooms := roomreg.New()

	srv := New(cfg, users, rooms)
	if srv.ConnectionCount() != 0 {
		t.Fatalf("ConnectionCount() = %d, want 0 before any connection", srv.ConnectionCount())
	}
	if srv.dispatcher == nil {
		t.Fatalf("dispatcher not wired")
	}
}
