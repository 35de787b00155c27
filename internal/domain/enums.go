package domain

// Consignment shells are always opened as supplier stock orders
const (
	ConsignmentTypeSupplier = "SUPPLIER"
	ConsignmentStatusOpen   = "OPEN"
)

// Products created on the fly are plain standard products
const ProductTypeStandard = "standard"

// Refresh metadata keys. Both are stamped together on every refresh so
// readers needing either representation never convert.
const (
	MetaLastRefreshEpoch = "catalog_last_refresh_epoch"
	MetaLastRefreshISO   = "catalog_last_refresh_iso"
)
