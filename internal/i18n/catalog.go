package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

var vi = map[string]string{
	"error.network":           "Lỗi kết nối mạng",
	"error.timeout":           "Yêu cầu hết thời gian chờ",
	"error.unauthorized":      "Không có quyền truy cập",
	"error.forbidden":         "Truy cập bị từ chối",
	"error.not_found":         "Không tìm thấy dữ liệu",
	"error.server":            "Lỗi máy chủ",
	"error.validation":        "Dữ liệu không hợp lệ",
	"error.token_expired":     "Phiên đăng nhập đã hết hạn",
	"error.report_filter":     "Bộ lọc không hợp lệ. Hãy chọn nhân viên kèm khoảng ngày, chỉ nhân viên, hoặc chỉ khoảng ngày",
	"error.missing_id":        "Thiếu mã định danh",
	"error.view_mode":         "Chế độ hiển thị phải là grid hoặc table",
	"error.password_mismatch": "Mật khẩu xác nhận không khớp",
	"error.rejected":          "Yêu cầu bị từ chối",
	"error.format":            "Định dạng phản hồi không được hỗ trợ",
	"error.rate_limited":      "Quá nhiều yêu cầu, vui lòng thử lại sau",

	"status.ACTIVE":     "Hoạt động",
	"status.ON_LEAVE":   "Nghỉ phép",
	"status.INACTIVE":   "Không hoạt động",
	"status.SUSPENDED":  "Tạm ngừng",
	"status.TERMINATED": "Đã nghỉ việc",
	"status.PENDING":    "Chờ xử lý",

	"report.employee_with_dates":  "Nhân viên theo khoảng ngày",
	"report.employee_all_time":    "Nhân viên toàn thời gian",
	"report.all_employees_period": "Toàn bộ nhân viên theo kỳ",

	"salary.unset":  "Chưa cập nhật",
	"salary.amount": "%d ₫",
}

var en = map[string]string{
	"error.network":           "Network connection error",
	"error.timeout":           "Request timed out",
	"error.unauthorized":      "Unauthorized",
	"error.forbidden":         "Access denied",
	"error.not_found":         "Data not found",
	"error.server":            "Server error",
	"error.validation":        "Invalid data",
	"error.token_expired":     "Your session has expired",
	"error.report_filter":     "Invalid filter. Provide an employee with dates, an employee only, or dates only",
	"error.missing_id":        "An id is required",
	"error.view_mode":         "View mode must be grid or table",
	"error.password_mismatch": "Password confirmation does not match",
	"error.rejected":          "Request rejected",
	"error.format":            "Unsupported response format",
	"error.rate_limited":      "Too many requests, try again later",

	"status.ACTIVE":     "Active",
	"status.ON_LEAVE":   "On leave",
	"status.INACTIVE":   "Inactive",
	"status.SUSPENDED":  "Suspended",
	"status.TERMINATED": "Terminated",
	"status.PENDING":    "Pending",

	"report.employee_with_dates":  "Employee over a date range",
	"report.employee_all_time":    "Employee, all time",
	"report.all_employees_period": "All employees for a period",

	"salary.unset":  "Not updated",
	"salary.amount": "%d ₫",
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Vietnamese))
	for tag, entries := range map[language.Tag]map[string]string{language.Vietnamese: vi, language.English: en} {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

func hasKey(key string) bool {
	_, ok := vi[key]
	return ok
}
