package batch

import (
	"errors"
	"testing"
)

func TestResolveSingleColumn(t *testing.T) {
	r := NewColumnResolver(ModeSingleColumn)

	row := Row{
		Columns: []string{"id", "address"},
		Values:  map[string]string{"id": "1", "address": "123 Main St, Austin, TX 78701"},
	}
	got, err := r.Resolve(row)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "123 Main St, Austin, TX 78701" {
		t.Errorf("resolved = %q", got)
	}
}

func TestResolveSingleColumnSchemaFailsFast(t *testing.T) {
	r := NewColumnResolver(ModeSingleColumn, "location")

	err := r.ValidateSchema([]string{"id", "address"})
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestResolveExplicitColumns(t *testing.T) {
	r := NewColumnResolver(ModeExplicitColumns, "Address", "City", "State", "Zip")

	row := Row{
		Columns: []string{"Address", "City", "State", "Zip"},
		Values: map[string]string{
			"Address": "123 Main St", "City": "Austin", "State": "TX", "Zip": "78701",
		},
	}
	got, err := r.Resolve(row)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "123 Main St, Austin, TX, 78701" {
		t.Errorf("resolved = %q", got)
	}
}

func TestResolveExplicitColumnsSkipsEmpty(t *testing.T) {
	r := NewColumnResolver(ModeExplicitColumns, "Address", "City", "State", "Zip")

	row := Row{
		Columns: []string{"Address", "City", "State", "Zip"},
		Values:  map[string]string{"Address": "123 Main St", "City": "", "State": "TX", "Zip": " "},
	}
	got, err := r.Resolve(row)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "123 Main St, TX" {
		t.Errorf("resolved = %q, want empty values skipped", got)
	}
}

func TestResolveAutoCombine(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
		values  map[string]string
		want    string
		wantErr bool
	}{
		{
			name:    "canonical names",
			columns: []string{"street", "city", "state", "zip"},
			values: map[string]string{
				"street": "123 Main St", "city": "Austin", "state": "TX", "zip": "78701",
			},
			want: "123 Main St, Austin, TX, 78701",
		},
		{
			name:    "synonyms and case",
			columns: []string{"Street Address", "Town", "Province", "Postal Code"},
			values: map[string]string{
				"Street Address": "9 Elm Ave", "Town": "Dover", "Province": "DE", "Postal Code": "19901",
			},
			want: "9 Elm Ave, Dover, DE, 19901",
		},
		{
			name:    "typo within one edit",
			columns: []string{"adress", "city"},
			values:  map[string]string{"adress": "5 Oak St", "city": "Boise"},
			want:    "5 Oak St, Boise",
		},
		{
			name:    "output order fixed regardless of column order",
			columns: []string{"zip", "state", "city", "street"},
			values: map[string]string{
				"zip": "78701", "state": "TX", "city": "Austin", "street": "123 Main St",
			},
			want: "123 Main St, Austin, TX, 78701",
		},
		{
			name:    "too few recognized columns",
			columns: []string{"id", "name", "street"},
			values:  map[string]string{"id": "1", "name": "x", "street": "123 Main St"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewColumnResolver(ModeAutoCombine)
			got, err := r.Resolve(Row{Columns: tc.columns, Values: tc.values})
			if tc.wantErr {
				if !errors.Is(err, ErrUnresolvedColumns) {
					t.Fatalf("err = %v, want ErrUnresolvedColumns", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tc.want {
				t.Errorf("resolved = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAutoCombineSchemaAlwaysPasses(t *testing.T) {
	r := NewColumnResolver(ModeAutoCombine)
	if err := r.ValidateSchema([]string{"whatever"}); err != nil {
		t.Errorf("ValidateSchema = %v, want nil", err)
	}
}
