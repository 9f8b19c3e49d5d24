package logger

// Shared log field names so queries stay consistent across the project.
const (
	// FieldTraceID request trace ID
	FieldTraceID = "traceId"

	// FieldFlowID flow identifier
	FieldFlowID = "flowId"

	// FieldVersion flow version number
	FieldVersion = "version"

	// FieldActor acting identity reference
	FieldActor = "actor"

	// FieldMethod method name
	FieldMethod = "method"

	// FieldDuration elapsed time
	FieldDuration = "duration"

	// FieldOrigin version origin (manual/rollback/system)
	FieldOrigin = "origin"

	// FieldTask background task name
	FieldTask = "task"
)
