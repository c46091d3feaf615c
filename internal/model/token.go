package model

// FormTokenManager issues and checks the anti-forgery tokens embedded in forms.
type FormTokenManager interface {
	Generate() (string, error)
	Validate(token string) error
}
