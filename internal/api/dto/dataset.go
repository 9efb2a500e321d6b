package dto

type WarningResponse struct {
	Source  string `json:"source"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

type DatasetResponse struct {
	TotalRows    int               `json:"total_rows"`
	Returned     int               `json:"returned"`
	DegradedRows int               `json:"degraded_rows"`
	ModelMode    string            `json:"model_mode"`
	Columns      []string          `json:"columns"`
	Rows         [][]string        `json:"rows"`
	Warnings     []WarningResponse `json:"warnings"`
}
