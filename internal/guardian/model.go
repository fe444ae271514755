package guardian

// Parent は通知の宛先となる保護者。1人の保護者に複数の生徒を割当可能。
type Parent struct {
	ParentID  string // ULID
	Name      string
	Email     string
	CreatedAt string
}
