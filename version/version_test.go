package version

import "testing"

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"version only", Info{Version: "dev"}, "dev"},
		{"short commit", Info{Version: "0.3.0", Commit: "abc1234"}, "0.3.0-abc1234"},
		{"long commit", Info{Version: "0.3.0", Commit: "abc1234def5678"}, "0.3.0-abc1234"},
		{"dirty", Info{Version: "0.3.0", Commit: "abc1234", Dirty: true}, "0.3.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.String(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestInfo_IsRelease(t *testing.T) {
	if (Info{Version: "dev"}).IsRelease() {
		t.Error("dev is not a release")
	}
	if (Info{Version: "1.0.0", Dirty: true}).IsRelease() {
		t.Error("a dirty build is not a release")
	}
	if !(Info{Version: "1.0.0"}).IsRelease() {
		t.Error("expected a release")
	}
}

func TestGet_LinkTimeValues(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "1.2.3", "feedbee"
	info := Get()
	if info.Version != "1.2.3" || info.Commit != "feedbee" {
		t.Fatalf("expected link time values, got %+v", info)
	}
}
