package domain

// UserRole is the submitting party's role in the tenancy dispute.
type UserRole string

const (
	RoleTenant   UserRole = "tenant"
	RoleLandlord UserRole = "landlord"
)

// IssueType enumerates the dispute issues a CaseFile can raise. The set is
// open-ended in principle but these are the types the issue-keyword
// dictionary and reranker recognize by name. Other values are carried
// through unchanged; nothing maps them onto IssueOther.
type IssueType string

const (
	IssueDepositProtection IssueType = "deposit-protection"
	IssueCleaning          IssueType = "cleaning"
	IssueDamage            IssueType = "damage"
	IssueFairWearAndTear   IssueType = "fair_wear_and_tear"
	IssueInventory         IssueType = "inventory"
	IssueRentArrears       IssueType = "rent-arrears"
	IssueGarden            IssueType = "garden"
	IssueDecoration        IssueType = "decoration"
	IssueOther             IssueType = "other"
)

// Property describes the rented property at the centre of the dispute.
type Property struct {
	Address  string `json:"address"`
	Postcode string `json:"postcode"`
	Region   string `json:"region"`
	Type     string `json:"type"`
}

// Tenancy carries the lease terms relevant to a deposit dispute.
type Tenancy struct {
	StartDate          string `json:"start_date"`
	EndDate             string `json:"end_date,omitempty"`
	MonthlyRent         float64 `json:"monthly_rent"`
	DepositAmount       float64 `json:"deposit_amount"`
	DepositProtected    bool    `json:"deposit_protected"`
	ProtectionScheme    string  `json:"protection_scheme,omitempty"`
}

// EvidenceItem is one piece of evidence supplied during intake. Image
// contents are never fetched by the engine; ExtractedText is populated by
// the evidence collaborator ahead of time.
type EvidenceItem struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	ExtractedText string `json:"extracted_text,omitempty"`
}

// ClaimedAmount ties a monetary claim to an issue and the evidence that
// supports it.
type ClaimedAmount struct {
	Issue          IssueType `json:"issue"`
	Amount         float64   `json:"amount"`
	EvidenceRefs   []int     `json:"evidence_refs,omitempty"`
}

// requiredFields lists the five fields whose presence determines
// intake-completeness, in the order they are reported when missing.
var requiredFields = []string{
	"property_address",
	"tenancy_start_date",
	"deposit_amount",
	"issues",
	"deposit_protection_status",
}

// CaseFile is the user-supplied dispute, owned by the intake collaborator.
// The engine only ever holds a read-only snapshot.
type CaseFile struct {
	CaseID    string   `json:"case_id"`
	UserRole  UserRole `json:"user_role"`
	Property  Property `json:"property"`
	Tenancy   Tenancy  `json:"tenancy"`
	Issues    []IssueType     `json:"issues"`
	Evidence  []EvidenceItem  `json:"evidence"`
	Claims    []ClaimedAmount `json:"claims"`
	Narrative string          `json:"narrative"`

	// DepositProtectionKnown distinguishes "known not protected" (false,
	// but a deliberate answer) from "not yet answered" during intake.
	DepositProtectionKnown bool `json:"deposit_protection_known"`
}

// MissingRequiredFields returns the required fields (see §3) that are not
// yet populated, in canonical order. An empty slice means intake is
// complete.
func (c CaseFile) MissingRequiredFields() []string {
	var missing []string
	if c.Property.Address == "" {
		missing = append(missing, "property_address")
	}
	if c.Tenancy.StartDate == "" {
		missing = append(missing, "tenancy_start_date")
	}
	if c.Tenancy.DepositAmount <= 0 {
		missing = append(missing, "deposit_amount")
	}
	if len(c.Issues) == 0 {
		missing = append(missing, "issues")
	}
	if !c.DepositProtectionKnown {
		missing = append(missing, "deposit_protection_status")
	}
	return missing
}

// IntakeComplete reports whether every required field is present. It is the
// authoritative form of the intake_complete ↔ missing_required_fields = ∅
// invariant; callers must not maintain a separate boolean.
func (c CaseFile) IntakeComplete() bool {
	return len(c.MissingRequiredFields()) == 0
}

// CompletenessScore is a coarse 0..1 fraction of required fields present,
// useful for intake UI progress bars; it is derived, never stored.
func (c CaseFile) CompletenessScore() float64 {
	missing := len(c.MissingRequiredFields())
	return float64(len(requiredFields)-missing) / float64(len(requiredFields))
}
