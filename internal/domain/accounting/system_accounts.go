package accounting

import "fmt"

// SystemAccountRole identifies a well-known account the posting and costing
// engines rely on. The set is closed: adding a role means extending the
// switch in Definition, which the compiler checks at every call site using
// AllSystemAccountRoles.
type SystemAccountRole string

const (
	RoleCash          SystemAccountRole = "CASH"
	RoleAR            SystemAccountRole = "AR"
	RoleAP            SystemAccountRole = "AP"
	RoleRevenue       SystemAccountRole = "REVENUE"
	RoleExpense       SystemAccountRole = "EXPENSE"
	RoleTaxPayable    SystemAccountRole = "TAX_PAYABLE"
	RoleTaxInput      SystemAccountRole = "TAX_INPUT"
	RoleInventory     SystemAccountRole = "INVENTORY"
	RoleCOGS          SystemAccountRole = "COGS"
	RoleWastage       SystemAccountRole = "WASTAGE"
	RoleInventoryAdj  SystemAccountRole = "INVENTORY_ADJ"
	RoleOpeningEquity SystemAccountRole = "OPENING_EQUITY"
	RoleSuspense      SystemAccountRole = "SUSPENSE"
)

// AllSystemAccountRoles lists every role the bootstrap ensures, in chart
// order.
func AllSystemAccountRoles() []SystemAccountRole {
	return []SystemAccountRole{
		RoleCash, RoleAR, RoleInventory, RoleTaxInput,
		RoleAP, RoleTaxPayable,
		RoleOpeningEquity,
		RoleRevenue,
		RoleExpense, RoleCOGS, RoleWastage, RoleInventoryAdj,
		RoleSuspense,
	}
}

// SystemAccountDefinition is the fixed (code, name, type) triple for a role.
type SystemAccountDefinition struct {
	Code string
	Name string
	Type AccountType
}

// Definition returns the fixed chart entry for the role. Codes are stable:
// the bootstrap reuses any account that already carries the code for the
// tenant.
func (r SystemAccountRole) Definition() SystemAccountDefinition {
	switch r {
	case RoleCash:
		return SystemAccountDefinition{Code: "1000", Name: "Cash & Bank", Type: AccountTypeAsset}
	case RoleAR:
		return SystemAccountDefinition{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset}
	case RoleInventory:
		return SystemAccountDefinition{Code: "1200", Name: "Inventory", Type: AccountTypeAsset}
	case RoleTaxInput:
		return SystemAccountDefinition{Code: "1300", Name: "Input VAT / Tax Recoverable", Type: AccountTypeAsset}
	case RoleAP:
		return SystemAccountDefinition{Code: "2000", Name: "Accounts Payable", Type: AccountTypeLiability}
	case RoleTaxPayable:
		return SystemAccountDefinition{Code: "2100", Name: "Tax Payable", Type: AccountTypeLiability}
	case RoleOpeningEquity:
		return SystemAccountDefinition{Code: "3000", Name: "Opening Balance Equity", Type: AccountTypeEquity}
	case RoleRevenue:
		return SystemAccountDefinition{Code: "4000", Name: "Sales Revenue", Type: AccountTypeIncome}
	case RoleExpense:
		return SystemAccountDefinition{Code: "5000", Name: "General Expenses", Type: AccountTypeExpense}
	case RoleCOGS:
		return SystemAccountDefinition{Code: "5100", Name: "Cost of Goods Sold", Type: AccountTypeExpense}
	case RoleWastage:
		return SystemAccountDefinition{Code: "5200", Name: "Inventory Wastage", Type: AccountTypeExpense}
	case RoleInventoryAdj:
		return SystemAccountDefinition{Code: "5290", Name: "Inventory Adjustments", Type: AccountTypeExpense}
	case RoleSuspense:
		return SystemAccountDefinition{Code: "9999", Name: "Suspense", Type: AccountTypeAsset}
	default:
		panic(fmt.Sprintf("unknown system account role %q", r))
	}
}

// SystemAccounts is the role-to-account lookup returned by the bootstrap.
type SystemAccounts map[SystemAccountRole]*Account

// Get returns the account for a role. The bootstrap guarantees every role is
// present, so a miss indicates a programming error.
func (s SystemAccounts) Get(role SystemAccountRole) *Account {
	acct, ok := s[role]
	if !ok {
		panic(fmt.Sprintf("system account role %q not bootstrapped", role))
	}
	return acct
}
