package service

// User-facing texts of the verification dialogue.
const (
	PromptName           = "Please type your first name."
	PromptBranch         = "Type your department (e.g., CSE, ECE, CIVIL, etc.)."
	PromptPhone          = "Type your phone number."
	ReplyNameMismatch    = "First name not found. Please check your details and try again."
	ReplyBranchMismatch  = "Department does not match the first name. Please check your details and try again."
	ReplyPhoneMismatch   = "Phone number does not match the details provided. Please check your details and try again."
	ReplyVerified        = "You have been verified and will be moved to the members group."
	ReplyAlreadyVerified = "You are already verified."
	ReplyAlreadyActive   = "You already have a verification in progress. Please answer the last question."
	ReplyTimeout         = "Verification timed out. Please try again."
	ReplyCancelled       = "Verification cancelled. Type verify to start again."
	ReplyPersistFailed   = "We could not save your verification. Please type verify to try again."
	ReplyShuttingDown    = "Verification interrupted because the bot is restarting. Please try again in a moment."
)
