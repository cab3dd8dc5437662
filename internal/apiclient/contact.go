package apiclient

import (
	"context"
	"net/http"
)

const contactPath = "/api/contact"

// submissionsRetries is how many times a failed submissions query is repeated.
const submissionsRetries = 3

// ContactInput is a visitor's contact message.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Submission is a stored contact message.
type Submission struct {
	ID string `json:"_id"`
	ContactInput
	CreatedAt string `json:"createdAt,omitempty"`
}

// Contact wraps /api/contact.
type Contact struct {
	client *Client
}

// Submit sends a contact message. No token is required.
func (contact *Contact) Submit(ctx context.Context, input ContactInput) (*Acknowledgement, error) {
	var acknowledgement Acknowledgement
	if err := contact.client.do(ctx, http.MethodPost, contactPath+"/submit", nil, input, &acknowledgement); err != nil {
		return nil, err
	}
	return &acknowledgement, nil
}

// Submissions lists stored contact messages for admins. A 401 or 403 is
// returned after the first attempt. Other failures are retried up to
// three times before the last error is returned.
func (contact *Contact) Submissions(ctx context.Context) ([]Submission, error) {
	return retryUnlessUnauthorized(ctx, contact.client, submissionsRetries, func() ([]Submission, error) {
		var submissions []Submission
		if err := contact.client.do(ctx, http.MethodGet, contactPath+"/submissions", nil, nil, &submissions); err != nil {
			return nil, err
		}
		return submissions, nil
	})
}
