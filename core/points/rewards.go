package points

// Reward categories
const (
	CategoryCanteen   = "canteen"
	CategoryLibrary   = "library"
	CategoryBookstore = "bookstore"
	CategoryEvents    = "events"
	CategoryMerch     = "merch"
)

// Reward is an item users can redeem their points for.
type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Category    string `json:"category"`
}

var catalog = []Reward{
	{ID: "r1", Name: "Free Coffee", Description: "Any regular coffee at the campus canteen", Cost: 50, Category: CategoryCanteen},
	{ID: "r2", Name: "Lunch Voucher", Description: "One full meal at the campus canteen", Cost: 100, Category: CategoryCanteen},
	{ID: "r3", Name: "Snack Combo", Description: "Snack and drink combo", Cost: 75, Category: CategoryCanteen},
	{ID: "r4", Name: "Extended Book Loan", Description: "Extend a library loan by 2 weeks", Cost: 40, Category: CategoryLibrary},
	{ID: "r5", Name: "Priority Book Reservation", Description: "Skip the queue for a reserved book", Cost: 150, Category: CategoryLibrary},
	{ID: "r6", Name: "Late Fee Waiver", Description: "Waive one library late fee", Cost: 80, Category: CategoryLibrary},
	{ID: "r7", Name: "10% Book Discount", Description: "10% off one purchase at the bookstore", Cost: 200, Category: CategoryBookstore},
	{ID: "r8", Name: "Stationery Voucher", Description: "Stationery items at the bookstore", Cost: 150, Category: CategoryBookstore},
	{ID: "r9", Name: "Free Notebook Set", Description: "Set of 3 branded notebooks", Cost: 120, Category: CategoryBookstore},
	{ID: "r10", Name: "Tech Fest Entry", Description: "Entry pass to the annual tech fest", Cost: 300, Category: CategoryEvents},
	{ID: "r11", Name: "Workshop Priority", Description: "Priority registration for a workshop", Cost: 250, Category: CategoryEvents},
	{ID: "r12", Name: "College T-Shirt", Description: "Official college t-shirt", Cost: 500, Category: CategoryMerch},
	{ID: "r13", Name: "Study Match Badge", Description: "Limited edition Study Match badge", Cost: 100, Category: CategoryMerch},
}

// Rewards returns the reward catalog, optionally restricted to one category.
func Rewards(category string) []Reward {
	rewards := make([]Reward, 0, len(catalog))
	for _, r := range catalog {
		if category == "" || category == r.Category {
			rewards = append(rewards, r)
		}
	}
	return rewards
}

func findReward(id string) (Reward, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Reward{}, false
}
