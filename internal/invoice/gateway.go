package invoice

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayFetcher resolves payment details from Razorpay. Used only to fill
// in the method and bank transaction id when the job payload omits them.
type RazorpayFetcher struct {
	client *razorpay.Client
}

func NewRazorpayFetcher(key, secret string) *RazorpayFetcher {
	return &RazorpayFetcher{client: razorpay.NewClient(key, secret)}
}

func (f *RazorpayFetcher) Fetch(paymentID string) (map[string]interface{}, error) {
	payment, err := f.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch failed: %w", err)
	}
	return payment, nil
}
