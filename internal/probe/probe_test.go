package probe

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "OK"},
		{StatusFailed, "FAILED"},
		{StatusNoCapability, "NO_CAPABILITY"},
		{StatusNoPermission, "NO_PERMISSION"},
		{StatusResolveFail, "RESOLVE_FAIL"},
		{StatusError, "ERROR"},
		{Status(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusReachable(t *testing.T) {
	if !StatusOK.Reachable() {
		t.Error("StatusOK.Reachable() = false, want true")
	}

	for _, s := range []Status{StatusFailed, StatusNoCapability, StatusNoPermission, StatusResolveFail, StatusError} {
		if s.Reachable() {
			t.Errorf("%v.Reachable() = true, want false", s)
		}
	}
}
