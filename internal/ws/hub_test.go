package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient("u1", nil, ConnInfo{ConnID: "c1", UserID: "u1"})
	if len(hub.userConns) != 1 {
		t.Fatalf("expected user room to be created")
	}
	if _, ok := hub.getConnInfo("u1", nil); !ok {
		t.Fatalf("expected conn info to be tracked")
	}

	hub.RemoveClient("u1", nil)
	if len(hub.userConns) != 0 {
		t.Fatalf("expected user room to be removed")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info to be removed")
	}
}

func TestHubRemoveClientKeepsOtherUsers(t *testing.T) {
	hub := NewHub()

	hub.AddClient("u1", nil, ConnInfo{ConnID: "c1"})
	hub.AddClient("u2", nil, ConnInfo{ConnID: "c2"})

	hub.RemoveClient("u1", nil)
	if len(hub.userConns) != 1 {
		t.Fatalf("expected one user room to remain")
	}
	if _, ok := hub.getConnInfo("u2", nil); !ok {
		t.Fatalf("expected second user's conn info to remain")
	}
}
