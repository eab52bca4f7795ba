package models

type EAuditEventType string

const (
	UserRegistered  EAuditEventType = "User registered"
	PasswordChanged EAuditEventType = "Password changed"
	TodoCreated     EAuditEventType = "Todo created"
	TodoUpdated     EAuditEventType = "Todo updated"
	TodoDeleted     EAuditEventType = "Todo deleted"
	TodosCleared    EAuditEventType = "Completed todos cleared"
)
