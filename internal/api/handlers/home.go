package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const homePage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>EV Ride Booking</title></head>
<body>
<h1>EV Ride Booking</h1>
<p>POST a booking to <code>/api/book-ride</code>.</p>
</body>
</html>
`

func Home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(homePage))
}
