package convert

import "testing"

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"min quality", Options{Quality: 0, Effort: 1}, false},
		{"max quality", Options{Quality: 100, Effort: 6}, false},
		{"quality too low", Options{Quality: -1, Effort: 4}, true},
		{"quality too high", Options{Quality: 101, Effort: 4}, true},
		{"effort too low", Options{Quality: 80, Effort: 0}, true},
		{"effort too high", Options{Quality: 80, Effort: 7}, true},
		{"negative max dimension", Options{Quality: 80, Effort: 4, MaxDimension: -1}, true},
		{"resize enabled", Options{Quality: 80, Effort: 4, MaxDimension: 1920}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
