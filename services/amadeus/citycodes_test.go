package amadeus

import "testing"

func TestResolveCityCode(t *testing.T) {
	service := NewService("id", "secret")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "uppercase IATA code passes through",
			input: "PAR",
			want:  "PAR",
		},
		{
			name:  "unknown IATA code still passes through",
			input: "XYZ",
			want:  "XYZ",
		},
		{
			name:  "exact city name",
			input: "Paris",
			want:  "PAR",
		},
		{
			name:  "city name with different casing",
			input: "new york",
			want:  "NYC",
		},
		{
			name:  "city name inside longer input",
			input: "Tokyo, Japan",
			want:  "TYO",
		},
		{
			name:  "partial city name",
			input: "amsterd",
			want:  "AMS",
		},
		{
			name:    "unknown city",
			input:   "Atlantis",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ResolveCityCode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveCityCode(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCityCode(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveCityCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
