package handlers

import "time"

// GenerateLinkRequest is the request for creating a secure link. The bearer
// credential travels in the Authorization header and is sealed into the link
// payload, not checked against anything here.
type GenerateLinkRequest struct {
	Authorization string `doc:"Bearer credential to carry inside the link" header:"Authorization"`
	Body          struct {
		Data map[string]any `doc:"Arbitrary JSON payload to encrypt into the link" json:"data"`
	}
}

// GenerateLinkResponse is the response for a successfully created link.
type GenerateLinkResponse struct {
	Body struct {
		ShortCode string    `doc:"Short code identifying the link" example:"aZ3_x9Qk" json:"short_code"`
		CreatedAt time.Time `doc:"Creation time (UTC)"                                json:"created_at"`
		ExpiresAt time.Time `doc:"Expiration time (UTC)"                              json:"expires_at"`
	}
}

// ValidateLinkRequest is the request for resolving a short code.
type ValidateLinkRequest struct {
	Code string `doc:"The short code" example:"aZ3_x9Qk" path:"code"`
}

// ValidateLinkResponse is the response for a validation attempt. Invalid
// outcomes are data, not transport errors: the status is always 200 and the
// Error field carries the reason.
type ValidateLinkResponse struct {
	Body struct {
		Valid       bool           `doc:"Whether the link resolved to a live payload" json:"valid"`
		Data        map[string]any `doc:"Decrypted payload when valid"                json:"data,omitempty"`
		Token       string         `doc:"Credential carried by the link when valid"   json:"token,omitempty"`
		EncryptedAt *time.Time     `doc:"When the link was created, when valid"       json:"encrypted_at,omitempty"`
		Error       string         `doc:"Failure reason when invalid"                 json:"error,omitempty"`
	}
}
