package dto

// NewItem is one requested line of an order: the price is snapshotted from the
// catalog server-side, never taken from the client.
type NewItem struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type CreateOrderRequest struct {
	BranchID     int64     `json:"branch_id"`
	EmployeeID   int64     `json:"employee_id"`
	MembershipID *int64    `json:"membership_id,omitempty"`
	OrderType    string    `json:"order_type"`
	Items        []NewItem `json:"order_items,omitempty"`
}

type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type UpdateItemStatusRequest struct {
	Status string `json:"status"`
}
