package constants

// Audit log action names.
const (
	Create     = "CREATE"
	Update     = "UPDATE"
	Delete     = "DELETE"
	Borrow     = "BORROW"
	Return     = "RETURN"
	Register   = "REGISTER"
	Login      = "LOGIN"
	AdminLogin = "ADMIN_LOGIN"
)
