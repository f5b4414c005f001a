package tools

// IsBiddingOpen 拍卖是否处于可出价窗口 [start, end)
func IsBiddingOpen(now, startTime, endTime int64) bool {
	return now >= startTime && now < endTime
}

// SecondsRemaining 距结束的剩余秒数，已结束返回 0
func SecondsRemaining(now, endTime int64) int64 {
	if now >= endTime {
		return 0
	}
	return endTime - now
}

// ExtendsAuction 在结束前 timeBuffer 秒内的出价会把结束时间顺延，返回顺延后的结束时间
func ExtendsAuction(bidTime, endTime int64, timeBuffer uint64) (int64, bool) {
	if bidTime >= endTime {
		return endTime, false
	}
	if endTime-bidTime >= int64(timeBuffer) {
		return endTime, false
	}
	return bidTime + int64(timeBuffer), true
}
