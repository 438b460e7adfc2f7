package payment

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPhonePe_EncodeChecksum(t *testing.T) {
	p := NewPhonePe("MERCHANT", "salt-key", "1", "https://pg.test", "https://app.test/payment/return")
	payload, checksum, err := p.encode(PhonePeInitiation{TransactionID: "T1", UserID: "MCU42", AmountPaise: 49900})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	sum := sha256.Sum256([]byte(payload + "/pg/v1/pay" + "salt-key"))
	want := hex.EncodeToString(sum[:]) + "###1"
	if checksum != want {
		t.Errorf("checksum = %s, want %s", checksum, want)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	var decoded map[string]interface{}
	json.Unmarshal(raw, &decoded)
	if decoded["merchantId"] != "MERCHANT" || decoded["amount"].(float64) != 49900 {
		t.Errorf("unexpected payload %s", raw)
	}
	if decoded["redirectMode"] != "REDIRECT" {
		t.Errorf("expected REDIRECT mode, got %v", decoded["redirectMode"])
	}
}

func TestPhonePe_Initiate(t *testing.T) {
	var gotVerify string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pg/v1/pay" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotVerify = r.Header.Get("X-VERIFY")
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["request"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay.test/page/T1"}}}}`))
	}))
	defer srv.Close()

	p := NewPhonePe("MERCHANT", "salt-key", "1", srv.URL, "https://app.test/return")
	url, err := p.Initiate(context.Background(), PhonePeInitiation{TransactionID: "T1", UserID: "guest", AmountPaise: 100})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if url != "https://pay.test/page/T1" {
		t.Errorf("unexpected redirect %s", url)
	}
	if gotVerify == "" {
		t.Error("expected X-VERIFY header")
	}
}

func TestPhonePe_InitiateUnsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"code":"BAD_REQUEST","message":"Please check the inputs"}`))
	}))
	defer srv.Close()

	p := NewPhonePe("MERCHANT", "salt-key", "1", srv.URL, "https://app.test/return")
	if _, err := p.Initiate(context.Background(), PhonePeInitiation{TransactionID: "T1", AmountPaise: 100}); err == nil {
		t.Fatal("expected error for unsuccessful response")
	}
}
