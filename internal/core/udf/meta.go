package udf

// Meta is the Office.js custom functions metadata document.
type Meta struct {
	AllowCustomDataForDataTypeAny bool       `json:"allowCustomDataForDataTypeAny"`
	AllowErrorForDataTypeAny      bool       `json:"allowErrorForDataTypeAny"`
	Functions                     []FuncMeta `json:"functions"`
}

// FuncMeta describes one function in the metadata document.
type FuncMeta struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Options     FuncOptions `json:"options"`
	Parameters  []ParamMeta `json:"parameters"`
	Result      ResultMeta  `json:"result"`
}

// FuncOptions are the per-function client options.
type FuncOptions struct {
	Volatile        bool `json:"volatile"`
	RequiresAddress bool `json:"requiresAddress"`
}

// ParamMeta describes a parameter in the metadata document.
type ParamMeta struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	Dimensionality string `json:"dimensionality"`
	Optional       bool   `json:"optional"`
}

// ResultMeta describes the function result.
type ResultMeta struct {
	Type           string `json:"type"`
	Dimensionality string `json:"dimensionality"`
}

// Meta returns the metadata document for all registered functions.
//
// The client always sends and receives 2-D arrays, so every parameter and
// result is declared as a matrix of type any. Scalar parameters are
// unwrapped on the server in Call.
func (r *Registry) Meta() Meta {
	m := Meta{
		AllowCustomDataForDataTypeAny: true,
		AllowErrorForDataTypeAny:      true,
		Functions:                     []FuncMeta{},
	}
	for _, f := range r.Funcs() {
		fm := FuncMeta{
			ID:          f.ID(r.namespace),
			Name:        f.ID(r.namespace),
			Description: f.Description,
			Options: FuncOptions{
				Volatile:        f.Volatile,
				RequiresAddress: f.RequiresAddress,
			},
			Parameters: make([]ParamMeta, len(f.Params)),
			Result:     ResultMeta{Type: "any", Dimensionality: "matrix"},
		}
		for i, p := range f.Params {
			fm.Parameters[i] = ParamMeta{
				Name:           p.Name,
				Description:    p.Description,
				Type:           "any",
				Dimensionality: "matrix",
				Optional:       p.Optional,
			}
		}
		m.Functions = append(m.Functions, fm)
	}
	return m
}
