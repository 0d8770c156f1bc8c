package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestParseDateFormat - Token Translation
// ---------------------------------------------------------------------------

func TestParseDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{"configuration block stamp", StampFormat, "2006-01-02T15:04:05+09:00", nil},
		{"core.xml stamp", W3CDTFFormat, "2006-01-02T15:04:05Z", nil},
		{"japanese era-less date", "YYYY年M月D日", "2006年1月2日", nil},
		{"short year and month name", "MMM YY", "Jan 06", nil},
		{"clock", "hh時mm分", "15時04分", nil},
		{"bare token letters are tokens", "Date", "2ate", nil},
		{"escaped tokens stay literal", "[YYYY]-MM", "YYYY-01", nil},
		{"first close ends the escape", "[a[b]c", "a[bc", nil},
		{"unclosed bracket", "[YYYY", "", ErrInvalidDateFormat},
		{"empty", "", "", ErrInvalidDateFormat},
		{"too long", strings.Repeat("Y", MaxDateFormatLength+1), "", ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateFormat(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseDateFormat(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateFormat(%q) error = %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseDateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "japanese date", format: "YYYY年M月D日", want: "2024年3月15日"},
		{name: "w3cdtf", format: W3CDTFFormat, want: "2024-03-15T10:30:00Z"},
		{name: "custom format", format: "YYYY/MM/DD", want: "2024/03/15"},
		{name: "unclosed bracket returns error", format: "YYYY[T", wantErr: ErrInvalidDateFormat},
		{name: "empty format returns error", format: "", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(tt.format, fixedTime)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Format(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestStamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "UTC moves nine hours ahead",
			in:   time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			want: "2024-03-15T19:30:00+09:00",
		},
		{
			name: "crosses midnight",
			in:   time.Date(2023, 12, 31, 20, 0, 5, 0, time.UTC),
			want: "2024-01-01T05:00:05+09:00",
		},
		{
			name: "JST input is unchanged",
			in:   time.Date(2024, 3, 15, 8, 0, 0, 0, JST),
			want: "2024-03-15T08:00:00+09:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Stamp(tt.in); got != tt.want {
				t.Errorf("Stamp(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestW3CDTF(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 3, 15, 19, 30, 0, 0, JST)
	if got, want := W3CDTF(in), "2024-03-15T10:30:00Z"; got != want {
		t.Errorf("W3CDTF() = %q, want %q", got, want)
	}
	back, err := ParseW3CDTF(W3CDTF(in))
	if err != nil || !back.Equal(in) {
		t.Errorf("ParseW3CDTF(W3CDTF()) = %v, %v, want %v", back, err, in)
	}
}

func TestParseW3CDTF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr error
	}{
		{
			name:  "UTC designator",
			value: "2024-03-15T10:30:00Z",
			want:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "numeric offset",
			value: "2024-03-15T19:30:00+09:00",
			want:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "no zone is UTC",
			value: "2024-03-15T10:30:00",
			want:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			value: " 2024-03-15 ",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			value:   "yesterday",
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseW3CDTF(tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseW3CDTF(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseW3CDTF(%q) unexpected error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseW3CDTF(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
