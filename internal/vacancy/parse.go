package vacancy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// 文档注释：展开检索响应为方案列表
// 背景：hotels[].hotel 为两槽数组：槽0含 hotelBasicInfo，槽1含 roomInfo；
// roomInfo 中 roomBasicInfo 与 dailyCharge 交替出现，两两成对。
// 约束：缺少 total 的方案跳过；末尾落单的房型条目忽略；酒店缺槽1时无方案。
func ParseHotels(body []byte) ([]Plan, error) {
	var resp struct {
		Hotels []struct {
			Hotel []json.RawMessage `json:"hotel"`
		} `json:"hotels"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode vacancy response: %w", err)
	}
	var out []Plan
	for i, h := range resp.Hotels {
		if len(h.Hotel) == 0 {
			continue
		}
		var basic struct {
			HotelBasicInfo struct {
				HotelName string `json:"hotelName"`
			} `json:"hotelBasicInfo"`
		}
		if err := json.Unmarshal(h.Hotel[0], &basic); err != nil {
			return nil, fmt.Errorf("decode hotels[%d] basic info: %w", i, err)
		}
		if len(h.Hotel) < 2 {
			continue
		}
		var rooms struct {
			RoomInfo []struct {
				RoomBasicInfo *struct {
					PlanName   string `json:"planName"`
					ReserveURL string `json:"reserveUrl"`
				} `json:"roomBasicInfo"`
				DailyCharge *struct {
					Total json.RawMessage `json:"total"`
				} `json:"dailyCharge"`
			} `json:"roomInfo"`
		}
		if err := json.Unmarshal(h.Hotel[1], &rooms); err != nil {
			return nil, fmt.Errorf("decode hotels[%d] room info: %w", i, err)
		}
		for j := 0; j+1 < len(rooms.RoomInfo); j += 2 {
			rb, dc := rooms.RoomInfo[j].RoomBasicInfo, rooms.RoomInfo[j+1].DailyCharge
			if dc == nil {
				continue
			}
			price, ok := parsePrice(dc.Total)
			if !ok {
				continue
			}
			p := Plan{HotelName: basic.HotelBasicInfo.HotelName, Price: price}
			if rb != nil {
				p.PlanName = rb.PlanName
				p.ReserveURL = rb.ReserveURL
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// parsePrice：total 多为整数，偶见字符串或小数；0 视为无价格
func parsePrice(raw json.RawMessage) (int, bool) {
	b := bytes.Trim(bytes.TrimSpace(raw), `"`)
	if len(b) == 0 || string(b) == "null" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int(f), true
}
