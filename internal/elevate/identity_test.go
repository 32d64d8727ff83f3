package elevate

import "testing"

func TestCurrentIdentity_Posix(t *testing.T) {
	env := map[string]string{"HOME": "/home/alice", "USER": "alice", "LOGNAME": "alice-login"}
	id := CurrentIdentity(func(key string) string { return env[key] }, "linux")
	if id.Home != "/home/alice" || id.User != "alice" || id.Login != "alice-login" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestCurrentIdentity_PosixLoginFallsBackToUser(t *testing.T) {
	env := map[string]string{"HOME": "/home/alice", "USER": "alice"}
	id := CurrentIdentity(func(key string) string { return env[key] }, "linux")
	if id.Login != "alice" {
		t.Fatalf("expected LOGNAME fallback to USER, got %q", id.Login)
	}
}

func TestCurrentIdentity_Windows(t *testing.T) {
	env := map[string]string{"USERPROFILE": `C:\Users\alice`, "USERNAME": "alice"}
	id := CurrentIdentity(func(key string) string { return env[key] }, "windows")
	if id.Home != `C:\Users\alice` || id.User != "alice" || id.Login != "alice" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestCurrentIdentity_WindowsHomeFallback(t *testing.T) {
	env := map[string]string{"HOME": "/c/Users/alice", "USERNAME": "alice"}
	id := CurrentIdentity(func(key string) string { return env[key] }, "windows")
	if id.Home != "/c/Users/alice" {
		t.Fatalf("expected HOME fallback, got %q", id.Home)
	}
}
