package models

// EditState is the lifecycle state of an edit session.
type EditState string

const (
	EditIdle    EditState = "idle"
	EditEditing EditState = "editing"
)

// DraftField names one editable record field.
type DraftField string

const (
	FieldName      DraftField = "name"
	FieldUnitPrice DraftField = "price"
	FieldCategory  DraftField = "category"
	FieldQuantity  DraftField = "quantity"
)

// Draft holds the in-progress values of a record being created or edited.
// A nil field has not been filled in yet.
type Draft struct {
	Name      *string  `validate:"required,min=1"`
	UnitPrice *float64 `validate:"required,gte=0"`
	Category  *string  `validate:"required,min=1"`
	Quantity  *int     `validate:"required,gte=0"`
}

// DraftFromRecord populates every field from an existing record.
func DraftFromRecord(r Record) Draft {
	name, category := r.Name, r.Category
	price, qty := r.UnitPrice, r.Quantity
	return Draft{Name: &name, UnitPrice: &price, Category: &category, Quantity: &qty}
}

// Clone returns a deep copy so callers cannot mutate the owner's draft.
func (d Draft) Clone() Draft {
	var out Draft
	if d.Name != nil {
		v := *d.Name
		out.Name = &v
	}
	if d.UnitPrice != nil {
		v := *d.UnitPrice
		out.UnitPrice = &v
	}
	if d.Category != nil {
		v := *d.Category
		out.Category = &v
	}
	if d.Quantity != nil {
		v := *d.Quantity
		out.Quantity = &v
	}
	return out
}

// Fields converts a complete draft into record fields. Missing values become zero values;
// validate the draft first.
func (d Draft) Fields() RecordFields {
	var f RecordFields
	if d.Name != nil {
		f.Name = *d.Name
	}
	if d.UnitPrice != nil {
		f.UnitPrice = *d.UnitPrice
	}
	if d.Category != nil {
		f.Category = *d.Category
	}
	if d.Quantity != nil {
		f.Quantity = *d.Quantity
	}
	return f
}
