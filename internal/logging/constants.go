package logging

// Standard field names used across ingestion log output.
const (
	FieldFile        = "file_path"
	FieldFormat      = "format"
	FieldParser      = "parser"
	FieldLayout      = "layout"
	FieldStrategy    = "strategy"
	FieldRow         = "row"
	FieldTenant      = "tenant"
	FieldUser        = "user"
	FieldConnection  = "bank_connection_id"
	FieldBankTxID    = "bank_transaction_id"
	FieldTransaction = "transaction_id"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldTier        = "tier"
	FieldReason      = "reason"
	FieldStatus      = "status"
	FieldCount       = "count"
	FieldDuration    = "duration_ms"
	FieldOutputFile  = "output_file"
)
