package configuration

import (
	"path/filepath"
	"testing"
)

type fixedArgs []string

func (a fixedArgs) Args() []string { return a }

func TestResolver(t *testing.T) {
	abs, err := filepath.Abs("custom.json")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		args fixedArgs
		want string
	}{
		{name: "default", args: nil, want: DefaultPath()},
		{name: "empty argument", args: fixedArgs{""}, want: DefaultPath()},
		{name: "relative", args: fixedArgs{"custom.json"}, want: abs},
		{name: "absolute", args: fixedArgs{"/opt/sealtun.json", "extra"}, want: "/opt/sealtun.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(tt.args).Resolve()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath(); got != "/etc/sealtun/config.json" {
		t.Fatalf("DefaultPath() = %q", got)
	}
}
