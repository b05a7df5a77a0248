package models

import "time"

// ActionType discriminates change records produced by an analysis job.
type ActionType string

const (
	ActionNewProduct        ActionType = "NEW_PRODUCT"
	ActionRemovedProduct    ActionType = "REMOVED_PRODUCT"
	ActionPriceIncrease     ActionType = "PRICE_INCREASE"
	ActionPriceDecrease     ActionType = "PRICE_DECREASE"
	ActionDescriptionChange ActionType = "DESCRIPTION_CHANGE"
)

// ModificationAction is the change record as the analysis backend sends it.
type ModificationAction struct {
	ActionID               FlexibleID `json:"action_id"`
	ActionType             ActionType `json:"action_type"`
	ProductName            *string    `json:"product_name,omitempty"`
	ManufacturerPartNumber *string    `json:"manufacturer_part_number,omitempty"`
	OldPrice               *Price     `json:"old_price,omitempty"`
	NewPrice               *Price     `json:"new_price,omitempty"`
	OldDescription         *string    `json:"old_description,omitempty"`
	NewDescription         *string    `json:"new_description,omitempty"`
	CreatedTime            Timestamp  `json:"created_time"`
}

// Change is one detected difference for one product. The concrete type
// determines which fields are meaningful.
type Change interface {
	Action() ActionType
	Product() ProductRef
	isChange()
}

// ProductRef carries the descriptive fields shared by every change.
// Empty strings mean the backend did not send a value.
type ProductRef struct {
	ActionID    string     `json:"action_id"`
	Name        string     `json:"product_name"`
	PartNumber  string     `json:"manufacturer_part_number"`
	CreatedTime *time.Time `json:"created_time,omitempty"`
}

// Product implements Change.
func (p ProductRef) Product() ProductRef { return p }

func (ProductRef) isChange() {}

// Addition is a product present in the uploaded pricelist but not the catalog.
type Addition struct {
	ProductRef
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// Deletion is a catalog product missing from the uploaded pricelist.
type Deletion struct {
	ProductRef
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// PriceIncrease records a higher price in the uploaded pricelist.
type PriceIncrease struct {
	ProductRef
	OldPrice *float64 `json:"old_price"`
	NewPrice *float64 `json:"new_price"`
}

// PriceDecrease records a lower price in the uploaded pricelist.
type PriceDecrease struct {
	ProductRef
	OldPrice *float64 `json:"old_price"`
	NewPrice *float64 `json:"new_price"`
}

// DescriptionChange records a changed product description.
type DescriptionChange struct {
	ProductRef
	OldDescription string `json:"old_description"`
	NewDescription string `json:"new_description"`
}

func (Addition) Action() ActionType { return ActionNewProduct }
func (Deletion) Action() ActionType { return ActionRemovedProduct }
func (PriceIncrease) Action() ActionType { return ActionPriceIncrease }
func (PriceDecrease) Action() ActionType { return ActionPriceDecrease }
func (DescriptionChange) Action() ActionType { return ActionDescriptionChange }

// Decode converts the wire record into its variant. ok is false for action
// types this service does not recognise.
func (m ModificationAction) Decode() (change Change, ok bool) {
	ref := ProductRef{
		ActionID:   m.ActionID.String(),
		Name:       deref(m.ProductName),
		PartNumber: deref(m.ManufacturerPartNumber),
	}
	if !m.CreatedTime.IsZero() {
		created := m.CreatedTime.Time
		ref.CreatedTime = &created
	}

	switch m.ActionType {
	case ActionNewProduct:
		return Addition{
			ProductRef:  ref,
			Description: firstNonEmpty(deref(m.NewDescription), deref(m.OldDescription)),
			Price:       firstPrice(m.NewPrice, m.OldPrice),
		}, true
	case ActionRemovedProduct:
		return Deletion{
			ProductRef:  ref,
			Description: firstNonEmpty(deref(m.OldDescription), deref(m.NewDescription)),
			Price:       firstPrice(m.OldPrice, m.NewPrice),
		}, true
	case ActionPriceIncrease:
		return PriceIncrease{ProductRef: ref, OldPrice: m.OldPrice.Float(), NewPrice: m.NewPrice.Float()}, true
	case ActionPriceDecrease:
		return PriceDecrease{ProductRef: ref, OldPrice: m.OldPrice.Float(), NewPrice: m.NewPrice.Float()}, true
	case ActionDescriptionChange:
		return DescriptionChange{
			ProductRef:     ref,
			OldDescription: deref(m.OldDescription),
			NewDescription: deref(m.NewDescription),
		}, true
	default:
		return nil, false
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPrice(values ...*Price) *float64 {
	for _, v := range values {
		if f := v.Float(); f != nil {
			return f
		}
	}
	return nil
}
