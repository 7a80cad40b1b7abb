package repositories

import "testing"

func TestQueryOpts_Normalize(t *testing.T) {
	tests := []struct {
		in   QueryOpts
		want QueryOpts
	}{
		{QueryOpts{}, QueryOpts{Limit: DefaultPageSize}},
		{QueryOpts{Limit: -5, Offset: -1}, QueryOpts{Limit: DefaultPageSize}},
		{QueryOpts{Limit: 50, Offset: 10}, QueryOpts{Limit: 50, Offset: 10}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
