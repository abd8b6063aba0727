package health

import (
	"fmt"
	"net/http"
)

func CheckHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "OK")
}
