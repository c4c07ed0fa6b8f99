// harvester/utils/types/tool.go
package types

const (
	PlaceholderName        = "Sin nombre"
	PlaceholderDescription = "Sin descripción"
	PlaceholderURL         = "Sin URL"

	DefaultCategory = "IA General"

	MaxDescriptionLen = 200
	MinNameLen        = 4

	DateLayout      = "2006-01-02"
	TimestampLayout = "20060102_150405"
)

// FieldNames is the column order shared by the CSV backup, the JSON keys and the spreadsheet.
var FieldNames = []string{"nombre", "descripcion", "url", "categoria", "fuente", "fecha"}

// ToolRecord is one normalized tool listing.
type ToolRecord struct {
	Name        string `json:"nombre" csv:"nombre"`
	Description string `json:"descripcion" csv:"descripcion"`
	URL         string `json:"url" csv:"url"`
	Category    string `json:"categoria" csv:"categoria"`
	Source      string `json:"fuente" csv:"fuente"`
	Date        string `json:"fecha" csv:"fecha"`
}

// Row returns the record's values in FieldNames order.
func (r ToolRecord) Row() []string {
	return []string{r.Name, r.Description, r.URL, r.Category, r.Source, r.Date}
}
