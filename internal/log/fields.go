package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldErrorType  = "error_type"

	FieldEntryID     = "entry_id"
	FieldPayDate     = "pay_date"
	FieldWorkdays    = "workdays"
	FieldKasbon      = "kasbon"
	FieldInstallment = "installment"
	FieldNewLoan     = "new_loan"
	FieldLoanBalance = "loan_balance"
	FieldRows        = "rows"
)

// Components
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentSession   = "session"
	ComponentAuth      = "auth"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTemplate  = "template"
	ComponentExport    = "export"
)

// Operations
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpSettings = "settings"
	OpExport   = "export"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpRender   = "render"
	OpMirror   = "mirror"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeInternal      = "internal_error"
	ErrorTypeTemplate      = "template_error"
	ErrorTypeSession       = "session_error"
	ErrorTypeAMQP          = "amqp_error"
	ErrorTypeSheets        = "sheets_error"
)
