package testutil

import "testing"

func TestOpenStore_ReadyToQuery(t *testing.T) {
	st := OpenStore(t, nil)

	var count int
	if err := st.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected the bootstrap admin row, got %d users", count)
	}
}

func TestNewClock_PinnedAtBaseTime(t *testing.T) {
	cl := NewClock()
	if got := cl.Now(); !got.Equal(BaseTime) {
		t.Errorf("Now() = %v, expected %v", got, BaseTime)
	}
}
