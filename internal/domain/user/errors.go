package user

import "errors"

var (
	ErrUnknownRole            = errors.New("unknown role")
	ErrManagerAccessRequired  = errors.New("manager, hr or admin access required")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
