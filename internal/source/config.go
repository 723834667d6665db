package source

const (
	// DefaultPath is the spreadsheet export shipped next to the tool.
	DefaultPath = "食品營養成分資料庫2024UPDATE2.xlsx - 工作表1.csv"
	// DefaultNameColumn holds the food name.
	DefaultNameColumn = "樣品名稱"
	// DefaultCalorieColumn holds the energy value.
	DefaultCalorieColumn = "熱量(kcal)"
)

// Config describes where the snapshot lives and how to read it.
type Config struct {
	// Path is a local CSV file. Ignored when URL is set.
	Path string `mapstructure:"path" default:"食品營養成分資料庫2024UPDATE2.xlsx - 工作表1.csv"`
	// URL is an HTTP(S) endpoint returning CSV.
	URL string `mapstructure:"url" default:""`
	// SkipRows is the number of rows before the header row.
	SkipRows int `mapstructure:"skip_rows" default:"1"`
	// NameColumn is the header of the food name column.
	NameColumn string `mapstructure:"name_column" default:"樣品名稱"`
	// CalorieColumn is the header of the calorie column.
	CalorieColumn string `mapstructure:"calorie_column" default:"熱量(kcal)"`
	// TimeoutSeconds bounds the HTTP fetch.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Location returns the URL when set, otherwise the file path.
func (c Config) Location() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Path
}
