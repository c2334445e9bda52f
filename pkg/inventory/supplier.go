package inventory

// Supplier is a vendor contact. It has no link to products.
type Supplier struct {
	ID           int64  `json:"id"`
	Name         string `json:"name" validate:"notblank"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	ContactPhone string `json:"contact_phone" validate:"notblank"`
}

// SupplierPatch carries the fields of a partial supplier update.
type SupplierPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,notblank"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty" validate:"omitempty,notblank"`
}

// Validate checks a supplier before it is inserted.
func (s Supplier) Validate() error {
	return check(s)
}

// Validate checks the fields present in the patch.
func (p SupplierPatch) Validate() error {
	return check(p)
}

// Empty reports whether the patch changes nothing.
func (p SupplierPatch) Empty() bool {
	return p.Name == nil && p.ContactEmail == nil && p.ContactPhone == nil
}

// Apply returns a copy of s with the patch applied.
func (p SupplierPatch) Apply(s Supplier) Supplier {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		s.ContactPhone = *p.ContactPhone
	}
	return s
}
