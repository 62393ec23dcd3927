package schema

// Attribute is a logical product attribute resolved against the physical
// schema by a priority-ordered synonym list.
type Attribute string

const (
	// AttrIdentifier is the sku-like product identifier.
	AttrIdentifier Attribute = "identifier"
	// AttrName is the display name.
	AttrName Attribute = "name"
	// AttrDescription is the long-form description.
	AttrDescription Attribute = "description"
	// AttrFamily is the product family.
	AttrFamily Attribute = "family"
	// AttrProductType is the product type or category.
	AttrProductType Attribute = "product_type"
	// AttrSpecification is the compliance specification.
	AttrSpecification Attribute = "specification"
	// AttrApplication is the intended application or use.
	AttrApplication Attribute = "application"
)

// synonyms maps each logical attribute to candidate column names in
// priority order. Resolution takes the first candidate present in the
// schema; lookups are case-insensitive, so only spelling variants that
// differ beyond casing are listed.
var synonyms = map[Attribute][]string{
	AttrIdentifier:    {"sku", "product_sku", "part_number", "partnumber", "product_id", "id", "item_number"},
	AttrName:          {"name", "product_name", "title", "productname"},
	AttrDescription:   {"description", "product_description", "details", "summary"},
	AttrFamily:        {"family", "product_family", "productfamily", "brand_family", "line"},
	AttrProductType:   {"product_type", "producttype", "type", "category", "product_category"},
	AttrSpecification: {"specification", "spec", "specs", "standard", "mil_spec", "compliance"},
	AttrApplication:   {"application", "applications", "use", "uses", "intended_use"},
}

// Resolver maps logical attributes to physical columns of one discovered
// schema. Resolution results are memoized; a Resolver is request-scoped.
type Resolver struct {
	schema   Schema
	resolved map[Attribute]string
	missed   map[Attribute]bool
}

// NewResolver creates a resolver over the given schema.
func NewResolver(s Schema) *Resolver {
	return &Resolver{
		schema:   s,
		resolved: make(map[Attribute]string),
		missed:   make(map[Attribute]bool),
	}
}

// Schema returns the schema this resolver was built over.
func (r *Resolver) Schema() Schema { return r.schema }

// Resolve returns the first synonym candidate present in the schema, in its
// stored casing, or ok=false when no candidate matches. A miss signals the
// caller to fall back to in-memory post-filtering.
func (r *Resolver) Resolve(attr Attribute) (string, bool) {
	if col, ok := r.resolved[attr]; ok {
		return col, true
	}
	if r.missed[attr] {
		return "", false
	}

	for _, candidate := range synonyms[attr] {
		if col, ok := r.schema.Canonical(candidate); ok {
			r.resolved[attr] = col
			return col, true
		}
	}

	r.missed[attr] = true
	return "", false
}

// Candidates returns the synonym list for an attribute, for record-level
// lookups when the column is absent from the schema (attribute-bag keys).
func Candidates(attr Attribute) []string {
	return synonyms[attr]
}
