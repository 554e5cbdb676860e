package enum

// Item categories. The backend stores them as plain strings; the item form
// only offers these three.
const (
	CategoryPizza    = "pizza"
	CategoryTopping  = "topping"
	CategoryBeverage = "beverage"
)

// Order statuses assigned by the backend. New orders always start as pending.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ValidCategory reports whether s is one of the known item categories.
func ValidCategory(s string) bool {
	switch s {
	case CategoryPizza, CategoryTopping, CategoryBeverage:
		return true
	}
	return false
}
