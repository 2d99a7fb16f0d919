package server

import "testing"

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name    string
		apiURL  string
		want    string
		wantErr bool
	}{
		{name: "loopback url", apiURL: "http://127.0.0.1:7411", want: "127.0.0.1:7411"},
		{name: "localhost url", apiURL: "http://localhost:7411", want: "localhost:7411"},
		{name: "bare host port", apiURL: "127.0.0.1:9000", want: "127.0.0.1:9000"},
		{name: "remote host refused", apiURL: "http://0.0.0.0:7411", wantErr: true},
		{name: "remote name refused", apiURL: "http://notary.example:7411", wantErr: true},
		{name: "empty refused", apiURL: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListenAddr(tt.apiURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ListenAddr(%q) = %q, want error", tt.apiURL, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListenAddr(%q): %v", tt.apiURL, err)
			}
			if got != tt.want {
				t.Errorf("ListenAddr(%q) = %q, want %q", tt.apiURL, got, tt.want)
			}
		})
	}
}

func TestListenAddrAllowsRemoteWhenOptedIn(t *testing.T) {
	t.Setenv(allowRemoteEnvKey, "true")

	got, err := ListenAddr("http://0.0.0.0:7411")
	if err != nil {
		t.Fatalf("ListenAddr: %v", err)
	}
	if got != "0.0.0.0:7411" {
		t.Errorf("addr = %q, want 0.0.0.0:7411", got)
	}
}
