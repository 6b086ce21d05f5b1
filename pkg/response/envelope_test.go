package response

import (
	"errors"
	"testing"
)

func mustDecode(t *testing.T, body string) Object {
	t.Helper()
	obj, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode(%q) unexpected error: %v", body, err)
	}
	return obj
}

func TestDecode_RejectsNonObjects(t *testing.T) {
	bodies := []string{
		"",
		"   ",
		"not json",
		`"not json"`,
		"null",
		"[1,2]",
		"42",
		`{"code":0`,
		`{"code":0} {"code":1}`,
	}

	for _, body := range bodies {
		if _, err := Decode([]byte(body)); !errors.Is(err, ErrNotObject) {
			t.Errorf("Decode(%q) error = %v, want ErrNotObject", body, err)
		}
	}
}

func TestObject_Code(t *testing.T) {
	tests := []struct {
		body     string
		expected int
		wantErr  bool
	}{
		{`{"code":0}`, 0, false},
		{`{"code":5}`, 5, false},
		{`{"code":-3}`, -3, false},
		{`{"code":6.0}`, 6, false},
		{`{"code":1e2}`, 100, false},
		{`{"code":5.5}`, 0, true},
		{`{"code":"5"}`, 0, true},
		{`{"code":null}`, 0, true},
		{`{"code":true}`, 0, true},
		{`{"code":{}}`, 0, true},
		{`{"success":true}`, 0, true},
	}

	for _, tt := range tests {
		code, err := mustDecode(t, tt.body).Code()
		if tt.wantErr {
			if !errors.Is(err, ErrMissingCode) {
				t.Errorf("Code(%s) error = %v, want ErrMissingCode", tt.body, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Code(%s) unexpected error: %v", tt.body, err)
			continue
		}
		if code != tt.expected {
			t.Errorf("Code(%s) = %d, want %d", tt.body, code, tt.expected)
		}
	}
}

func TestParse_Valid(t *testing.T) {
	badToken := "bad token"

	tests := []struct {
		name    string
		body    string
		code    int
		data    string
		errMsg  *string
		success bool
	}{
		{
			name:    "ok with data",
			body:    `{"code":0,"success":true,"data":{"x":1}}`,
			code:    0,
			data:    `{"x":1}`,
			success: true,
		},
		{
			name:    "auth error with message",
			body:    `{"code":5,"success":false,"error":"bad token"}`,
			code:    5,
			errMsg:  &badToken,
			success: false,
		},
		{
			name: "unknown code, nothing optional",
			body: `{"code":999,"success":false}`,
			code: 999,
		},
		{
			name:    "explicit nulls",
			body:    `{"code":0,"success":true,"data":null,"error":null}`,
			success: true,
		},
		{
			name:    "extra fields ignored",
			body:    `{"code":0,"success":true,"version":3}`,
			success: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Parse(mustDecode(t, tt.body))
			if env == nil {
				t.Fatal("Parse() returned nil")
			}
			if env.Code != tt.code {
				t.Errorf("Code = %d, want %d", env.Code, tt.code)
			}
			if env.Success != tt.success {
				t.Errorf("Success = %v, want %v", env.Success, tt.success)
			}
			if string(env.Data) != tt.data {
				t.Errorf("Data = %q, want %q", env.Data, tt.data)
			}
			if tt.data == "" && env.Data != nil {
				t.Errorf("Data = %q, want nil", env.Data)
			}
			switch {
			case tt.errMsg == nil && env.Error != nil:
				t.Errorf("Error = %q, want nil", *env.Error)
			case tt.errMsg != nil && (env.Error == nil || *env.Error != *tt.errMsg):
				t.Errorf("Error = %v, want %q", env.Error, *tt.errMsg)
			}
		})
	}
}

func TestParse_MalformedYieldsNil(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"success":true}`,
		`{"code":0}`,
		`{"code":"0","success":true}`,
		`{"code":0.5,"success":true}`,
		`{"code":0,"success":"true"}`,
		`{"code":0,"success":1}`,
		`{"code":0,"success":null}`,
		`{"code":0,"success":true,"data":[1,2]}`,
		`{"code":0,"success":true,"data":"x"}`,
		`{"code":0,"success":true,"data":7}`,
		`{"code":0,"success":true,"error":42}`,
		`{"code":0,"success":true,"error":{"msg":"x"}}`,
	}

	for _, body := range bodies {
		if env := Parse(mustDecode(t, body)); env != nil {
			t.Errorf("Parse(%s) = %+v, want nil", body, env)
		}
	}
}

func TestParse_NilObject(t *testing.T) {
	if env := Parse(nil); env != nil {
		t.Errorf("Parse(nil) = %+v, want nil", env)
	}
}

func TestEnvelope_DecodeData(t *testing.T) {
	env := Parse(mustDecode(t, `{"code":0,"success":true,"data":{"founds":[{"id":3,"title":"scarf"}]}}`))
	if env == nil {
		t.Fatal("Parse() returned nil")
	}

	var data struct {
		Founds []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"founds"`
	}
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData() unexpected error: %v", err)
	}
	if len(data.Founds) != 1 || data.Founds[0].ID != 3 || data.Founds[0].Title != "scarf" {
		t.Errorf("DecodeData() = %+v", data)
	}

	empty := Parse(mustDecode(t, `{"code":0,"success":true}`))
	if err := empty.DecodeData(&data); !errors.Is(err, ErrNoData) {
		t.Errorf("DecodeData() error = %v, want ErrNoData", err)
	}

	var nilEnv *Envelope
	if err := nilEnv.DecodeData(&data); !errors.Is(err, ErrNoData) {
		t.Errorf("nil DecodeData() error = %v, want ErrNoData", err)
	}
}
