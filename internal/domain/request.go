package domain

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// RecommendationRequest is the raw, loosely structured request. Every field
// is optional; an empty request is valid.
type RecommendationRequest struct {
	Query             string      `json:"query,omitempty"`
	Category          string      `json:"category,omitempty"`
	ProductType       string      `json:"product_type,omitempty"`
	Needs             StringList  `json:"needs,omitempty"`
	Concerns          StringList  `json:"concerns,omitempty"`
	Problem           string      `json:"problem,omitempty"`
	MedicalConditions StringList  `json:"medical_conditions,omitempty"`
	SkinConditions    StringList  `json:"skin_conditions,omitempty"`
	SkinType          string      `json:"skin_type,omitempty"`
	HairType          string      `json:"hair_type,omitempty"`
	Avoid             StringList  `json:"avoid,omitempty"`
	Preferences       StringList  `json:"preferences,omitempty"`
	Budget            BudgetInput `json:"budget"`
	Age               FlexString  `json:"age,omitempty"`
	Gender            string      `json:"gender,omitempty"`
	Language          string      `json:"language,omitempty" validate:"omitempty,max=35"`
	TopK              int         `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
}

// StringList accepts either a single JSON scalar or a list of scalars.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*l = nil
	case []any:
		out := make(StringList, 0, len(v))
		for _, item := range v {
			s, ok := scalarString(item)
			if !ok {
				return fmt.Errorf("list element of type %T is not a scalar", item)
			}
			if s != "" {
				out = append(out, s)
			}
		}
		*l = out
	default:
		s, ok := scalarString(v)
		if !ok {
			return fmt.Errorf("value of type %T is neither a scalar nor a list", v)
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
	}
	return nil
}

// FlexString accepts a JSON string or number, e.g. "age": 25 or "age": "30-40".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = ""
		return nil
	}
	s, ok := scalarString(raw)
	if !ok {
		return fmt.Errorf("value of type %T is not a scalar", raw)
	}
	*f = FlexString(s)
	return nil
}

// BudgetInput keeps whichever form the caller sent: a number or free text
// such as "medium" or "around 3000 DA".
type BudgetInput struct {
	Number *float64
	Text   string
}

func NumericBudget(v float64) BudgetInput { return BudgetInput{Number: &v} }

func TextBudget(s string) BudgetInput { return BudgetInput{Text: s} }

func (b BudgetInput) IsZero() bool { return b.Number == nil && b.Text == "" }

func (b *BudgetInput) UnmarshalJSON(data []byte) error {
	*b = BudgetInput{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		b.Number = &v
	case string:
		b.Text = v
	default:
		// Unsupported shapes leave the budget unset rather than failing the request.
	}
	return nil
}

func (b BudgetInput) MarshalJSON() ([]byte, error) {
	switch {
	case b.Number != nil:
		return json.Marshal(*b.Number)
	case b.Text != "":
		return json.Marshal(b.Text)
	default:
		return []byte("null"), nil
	}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
