// Package forms declares the storefront's form inputs and their validation.
package forms

import (
	"github.com/tyemirov/storefront/internal/apiclient"
)

// MinPasswordLength is the shortest password accepted on sign-up and reset.
const MinPasswordLength = 8

// SignInForm is the credential sign-in form.
type SignInForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Request converts the form to the backend payload.
func (form SignInForm) Request() apiclient.SignInRequest {
	return apiclient.SignInRequest{Email: form.Email, Password: form.Password}
}

// SignUpForm is the registration form.
type SignUpForm struct {
	FullName        string `form:"fullName" json:"fullName" binding:"required"`
	Email           string `form:"email" json:"email" binding:"required,email"`
	Password        string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required,eqfield=Password"`
}

// Request converts the form to the backend payload.
func (form SignUpForm) Request() apiclient.SignUpRequest {
	return apiclient.SignUpRequest{FullName: form.FullName, Email: form.Email, Password: form.Password}
}

// ForgotPasswordForm requests a reset link.
type ForgotPasswordForm struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// ResetPasswordForm sets a new password from a reset link.
type ResetPasswordForm struct {
	Password        string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required,eqfield=Password"`
}

// ContactForm is the public contact form.
type ContactForm struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Phone   string `form:"phone" json:"phone"`
	Subject string `form:"subject" json:"subject"`
	Message string `form:"message" json:"message" binding:"required"`
}

// Input converts the form to the backend payload.
func (form ContactForm) Input() apiclient.ContactInput {
	return apiclient.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Subject: form.Subject,
		Message: form.Message,
	}
}

// ProfileForm edits the signed-in account.
type ProfileForm struct {
	FullName string `form:"fullName" json:"fullName" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
}

// Update converts the form to the backend payload.
func (form ProfileForm) Update() apiclient.ProfileUpdate {
	return apiclient.ProfileUpdate{FullName: form.FullName, Email: form.Email}
}

// ProductForm is the admin product editor.
type ProductForm struct {
	Name        string  `form:"name" json:"name" binding:"required"`
	Description string  `form:"description" json:"description"`
	Price       float64 `form:"price" json:"price" binding:"min=0"`
	Category    string  `form:"category" json:"category" binding:"required"`
	Company     string  `form:"company" json:"company" binding:"required"`
	Image       string  `form:"image" json:"image"`
	Stock       int     `form:"stock" json:"stock" binding:"min=0"`
	ReleaseDate string  `form:"releaseDate" json:"releaseDate" binding:"omitempty,datetime=2006-01-02"`
}

// Input converts the form to the backend payload.
func (form ProductForm) Input() apiclient.ProductInput {
	return apiclient.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		Company:     form.Company,
		Image:       form.Image,
		Stock:       form.Stock,
		ReleaseDate: form.ReleaseDate,
	}
}

// BannerForm is the admin banner editor.
type BannerForm struct {
	Title    string `form:"title" json:"title" binding:"required"`
	Subtitle string `form:"subtitle" json:"subtitle"`
	Image    string `form:"image" json:"image" binding:"required"`
	Link     string `form:"link" json:"link"`
	Active   bool   `form:"active" json:"active"`
	Position int    `form:"position" json:"position" binding:"min=0"`
}

// Input converts the form to the backend payload.
func (form BannerForm) Input() apiclient.BannerInput {
	return apiclient.BannerInput{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Image:    form.Image,
		Link:     form.Link,
		Active:   form.Active,
		Position: form.Position,
	}
}
