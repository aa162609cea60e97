package donation

import "testing"

func TestDonorAddress(t *testing.T) {
	full := Donor{
		AddressLine: "4 MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
		Pincode:     "560001",
	}
	if got := full.Address(); got != "4 MG Road, Bengaluru, Karnataka, 560001" {
		t.Errorf("Address() = %q", got)
	}

	sparse := Donor{City: "Bengaluru", Pincode: "560001"}
	if got := sparse.Address(); got != "Bengaluru, 560001" {
		t.Errorf("Address() = %q, empty fields must be skipped", got)
	}

	var empty Donor
	if got := empty.Address(); got != "" {
		t.Errorf("Address() = %q, want empty", got)
	}
}
