package trust

type VouchInput struct {
	VoucherID string `json:"-"`
	VoucheeID string `json:"vouchee_id"`
}

type VouchDTO struct {
	VoucheeID           string `json:"vouchee_id"`
	VouchCount          int    `json:"vouch_count"`
	SocialProofVerified bool   `json:"social_proof_verified"`
}

type VerificationDTO struct {
	UserID              string `json:"user_id"`
	IdentityVerified    bool   `json:"identity_verified"`
	SocialProofVerified bool   `json:"social_proof_verified"`
}
