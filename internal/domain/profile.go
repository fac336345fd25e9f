package domain

type Profile struct {
	Email        string
	EmailBound   bool
	TwitterName  string
	TwitterBound bool
	Banned       bool
}
