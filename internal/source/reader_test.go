package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/foodsync/internal/testutil"
)

var defaultOpts = Options{
	SkipRows:      1,
	NameColumn:    DefaultNameColumn,
	CalorieColumn: DefaultCalorieColumn,
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    Options
		want    []Row
		wantErr bool
	}{
		{
			name:  "title row and bom",
			input: "\ufeff食品營養成分資料庫,,\n樣品名稱,熱量(kcal),類別\n蘋果,52,水果\n香蕉,89,水果\n",
			opts:  defaultOpts,
			want: []Row{
				{Name: "蘋果", Calories: "52", Line: 3},
				{Name: "香蕉", Calories: "89", Line: 4},
			},
		},
		{
			name:  "no skipped rows",
			input: "熱量(kcal),樣品名稱\n52,蘋果\n",
			opts:  Options{NameColumn: DefaultNameColumn, CalorieColumn: DefaultCalorieColumn},
			want:  []Row{{Name: "蘋果", Calories: "52", Line: 2}},
		},
		{
			name:  "header cells with padding",
			input: "title\n 樣品名稱 , 熱量(kcal) \n蘋果,52\n",
			opts:  defaultOpts,
			want:  []Row{{Name: "蘋果", Calories: "52", Line: 3}},
		},
		{
			name:  "short row keeps empty calories",
			input: "title\n樣品名稱,類別,熱量(kcal)\n蘋果,水果\n",
			opts:  defaultOpts,
			want:  []Row{{Name: "蘋果", Calories: "", Line: 3}},
		},
		{
			name:  "quoted values",
			input: "title\n樣品名稱,熱量(kcal)\n\"雞蛋, 全蛋\",\"1,234\"\n",
			opts:  defaultOpts,
			want:  []Row{{Name: "雞蛋, 全蛋", Calories: "1,234", Line: 3}},
		},
		{
			name:  "header only",
			input: "title\n樣品名稱,熱量(kcal)\n",
			opts:  defaultOpts,
			want:  nil,
		},
		{
			name:    "missing column",
			input:   "title\n名稱,熱量(kcal)\n蘋果,52\n",
			opts:    defaultOpts,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			opts:    defaultOpts,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input), tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_InvalidEncoding(t *testing.T) {
	// Big5 bytes for a fruit name where UTF-8 is expected.
	input := "\ufefftitle\n樣品名稱,熱量(kcal)\n蘋果,52\n\xa6\xcb\xaa\x47,52\n"

	rows, err := Parse(strings.NewReader(input), defaultOpts)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("Expected ErrInvalidEncoding, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 4") {
		t.Errorf("Expected line 4 in error, got %v", err)
	}
	if rows != nil {
		t.Errorf("Expected no rows, got %#v", rows)
	}
}

func TestParse_ReplacementCharacterIsValid(t *testing.T) {
	input := "title\n樣品名稱,熱量(kcal)\n\ufffd果,52\n"

	rows, err := Parse(strings.NewReader(input), defaultOpts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "\ufffd果" {
		t.Errorf("Unexpected rows: %#v", rows)
	}
}

func TestParse_MissingColumnSentinel(t *testing.T) {
	_, err := Parse(strings.NewReader("名稱,熱量(kcal)\n"), Options{
		NameColumn:    DefaultNameColumn,
		CalorieColumn: DefaultCalorieColumn,
	})
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.csv")
	testutil.CreateTestCSV(t, path, "資料庫", []string{DefaultNameColumn, DefaultCalorieColumn}, [][]string{
		{"蘋果", "52"},
		{"", "10"},
	})

	rows, err := Load(context.Background(), Config{
		Path:          path,
		SkipRows:      1,
		NameColumn:    DefaultNameColumn,
		CalorieColumn: DefaultCalorieColumn,
	}, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "蘋果" || rows[0].Calories != "52" {
		t.Errorf("Unexpected first row: %#v", rows[0])
	}
	if rows[1].Name != "" {
		t.Errorf("Expected empty name in second row, got %q", rows[1].Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), Config{
		Path:          filepath.Join(t.TempDir(), "missing.csv"),
		NameColumn:    DefaultNameColumn,
		CalorieColumn: DefaultCalorieColumn,
	}, nil)
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoad_NoLocation(t *testing.T) {
	if _, err := Load(context.Background(), Config{}, nil); err == nil {
		t.Error("Expected error when neither path nor URL is set")
	}
}

func TestLoad_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/foods.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("\ufefftitle\n樣品名稱,熱量(kcal)\n香蕉,89\n"))
	}))
	defer server.Close()

	cfg := Config{
		Path:           "ignored.csv",
		URL:            server.URL + "/foods.csv",
		SkipRows:       1,
		NameColumn:     DefaultNameColumn,
		CalorieColumn:  DefaultCalorieColumn,
		TimeoutSeconds: 5,
	}

	rows, err := Load(context.Background(), cfg, server.Client())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []Row{{Name: "香蕉", Calories: "89", Line: 3}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Load() = %#v, want %#v", rows, want)
	}
}

func TestLoad_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Load(context.Background(), Config{
		URL:           server.URL,
		NameColumn:    DefaultNameColumn,
		CalorieColumn: DefaultCalorieColumn,
	}, server.Client())
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

func TestConfigLocation(t *testing.T) {
	if got := (Config{Path: "a.csv"}).Location(); got != "a.csv" {
		t.Errorf("Expected a.csv, got %s", got)
	}
	if got := (Config{Path: "a.csv", URL: "https://x/y.csv"}).Location(); got != "https://x/y.csv" {
		t.Errorf("Expected URL to win, got %s", got)
	}
}
