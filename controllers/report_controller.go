package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-service/services"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

func (ctl *ReportController) GetSalesReport(c *gin.Context) {
	report, err := ctl.Reports.GetSalesReport(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}
