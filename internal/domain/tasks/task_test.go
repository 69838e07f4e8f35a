package tasks

import "testing"

func TestStatusAfterSession(t *testing.T) {
	cases := []struct {
		name     string
		current  string
		override string
		tasks    int
		want     string
	}{
		{"override wins", StatusPending, StatusSkipped, 2, StatusSkipped},
		{"tasks complete", StatusInProgress, "", 1, StatusCompleted},
		{"pending starts", StatusPending, "", 0, StatusInProgress},
		{"completed stays", StatusCompleted, "", 0, StatusCompleted},
	}
	for _, tc := range cases {
		if got := StatusAfterSession(tc.current, tc.override, tc.tasks); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusInProgress) || ValidStatus("done") {
		t.Fatalf("ValidStatus mismatch")
	}
}
