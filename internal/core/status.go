package core

// TagStatus is the lifecycle state of an opening tag.
type TagStatus string

const (
	TagAvailable TagStatus = "Available"
	TagSold      TagStatus = "Sold"
)

// TransactionStatus classifies a sale_details line by how it entered the
// ledger.
type TransactionStatus string

const (
	StatusSales                  TransactionStatus = "Sales"
	StatusOrders                 TransactionStatus = "Orders"
	StatusConvertedInvoice       TransactionStatus = "ConvertedInvoice"
	StatusConvertedRepairInvoice TransactionStatus = "ConvertedRepairInvoice"
)

// Repair workflow statuses. AssignToWorkshop blocks invoice deletion until the
// job is delivered back to the customer.
const (
	RepairAssignToWorkshop    = "Assign to Workshop"
	RepairReceiveFromWorkshop = "Receive from Workshop"
	RepairDeliveredToCustomer = "Delivered to Customer"
)

// deletableStatuses is the closed set of transaction statuses whose invoices
// may be deleted. Anything else (orders awaiting conversion, repair jobs still
// in the workshop) must be resolved first.
var deletableStatuses = map[TransactionStatus]bool{
	StatusSales:                  true,
	StatusConvertedInvoice:       true,
	StatusConvertedRepairInvoice: true,
}

// InvoiceDeletable reports whether an invoice whose lines carry the given
// statuses may be deleted. Every line must be in the deletable set.
func InvoiceDeletable(statuses []TransactionStatus) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, s := range statuses {
		if !deletableStatuses[s] {
			return false
		}
	}
	return true
}
