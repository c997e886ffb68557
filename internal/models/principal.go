package models

// Principal identifies who a request is acting as: the lab it operates from,
// the admin row backing the session, and the session role. It is built from
// session claims by the auth middleware and passed explicitly into every core
// call; nothing below the handlers reads ambient request state.
type Principal struct {
	LabID      uint64
	AdminRowID uint64
	Role       string
}
