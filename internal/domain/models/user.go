package models

// User представляет зарегистрированного покупателя
type User struct {
	ID        int64
	Email     string
	PassHash  []byte
	FirstName string
	LastName  string
}
