package domain

// ModuleID identifies one of the guided workflows.
type ModuleID string

const (
	ModuleBusinessStarter ModuleID = "business_starter"
	ModuleBusinessCredit  ModuleID = "business_credit"
	ModulePersonalBrand   ModuleID = "personal_brand"
)

// Module is a catalog entry. Steps is the curated order used for
// "next step" recommendations.
type Module struct {
	ID    ModuleID
	Title string
	Steps []string
}

var moduleCatalog = []Module{
	{
		ID:    ModuleBusinessStarter,
		Title: "Business Formation",
		Steps: []string{
			"create_llc",
			"get_ein",
			"open_business_bank",
			"get_business_address",
			"setup_business_phone",
		},
	},
	{
		ID:    ModuleBusinessCredit,
		Title: "Business Credit",
		Steps: []string{
			"register_duns",
			"setup_business_email",
			"open_net30_vendor",
			"add_first_tradeline",
			"apply_store_credit",
			"apply_business_card",
		},
	},
	{
		ID:    ModulePersonalBrand,
		Title: "Personal Brand",
		Steps: []string{
			"define_brand_identity",
			"create_logo",
			"launch_website",
			"setup_social_profiles",
			"publish_first_content",
		},
	},
}

// Modules returns the module catalog in display order.
func Modules() []Module {
	out := make([]Module, len(moduleCatalog))
	copy(out, moduleCatalog)
	return out
}

// ModuleIDs returns every known module id in display order.
func ModuleIDs() []ModuleID {
	ids := make([]ModuleID, 0, len(moduleCatalog))
	for _, m := range moduleCatalog {
		ids = append(ids, m.ID)
	}
	return ids
}

// LookupModule returns the catalog entry for id.
func LookupModule(id ModuleID) (Module, bool) {
	for _, m := range moduleCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// StepOrder returns the ordered step list of a module, nil when unknown.
func StepOrder(id ModuleID) []string {
	m, ok := LookupModule(id)
	if !ok {
		return nil
	}
	steps := make([]string, len(m.Steps))
	copy(steps, m.Steps)
	return steps
}

// TotalSteps is the fixed step count of a module, 0 when unknown.
func TotalSteps(id ModuleID) int {
	m, ok := LookupModule(id)
	if !ok {
		return 0
	}
	return len(m.Steps)
}

// ValidateStep checks that module and step both exist in the catalog.
func ValidateStep(module ModuleID, step string) error {
	m, ok := LookupModule(module)
	if !ok {
		return ErrUnknownModule
	}
	for _, s := range m.Steps {
		if s == step {
			return nil
		}
	}
	return ErrUnknownStep
}

func totalCatalogSteps() int {
	n := 0
	for _, m := range moduleCatalog {
		n += len(m.Steps)
	}
	return n
}
