package main

import (
	"fmt"
	"log"

	"tt_signer/headers"
)

func main() {
	qs := "req_id=1d123522-3e4e-4e7d-9e4f-3e2b190e4e96&device_platform=android&os=android&ssmix=a&_rticket=1767424033997&cdid=42857e2a-b162-49ab-a3f0-3f709f3873f4&channel=googleplay&aid=1233&app_name=musical_ly&version_code=370004&version_name=37.0.4&device_id=7319810267746993670&device_type=MI%209&os_version=9&iid=7320143441752360709&ts=1767424033"

	hs, err := headers.MakeHeaders(&headers.RequestContext{
		Params:    qs,
		Body:      `{"click_type":1}`,
		Timestamp: int64(1767424034),
	})
	if err != nil {
		log.Fatalf("sign failed: %v", err)
	}

	for _, k := range []string{"x-ss-req-ticket", "x-tt-trace-id", "x-ss-stub", "x-ladon", "x-khronos", "x-gorgon", "x-argus"} {
		fmt.Printf("%s: %s\n", k, hs[k])
	}
}
