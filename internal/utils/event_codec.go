package utils

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// 事件类型前缀，消费方据此选择解码方式
const (
	EventTypeAuctionPhase uint32 = 1 // 拍卖生命周期变化
)

const eventTypeSize = 4

// EncodeEvent 编码为 [4 字节小端事件类型][protobuf 数据]
func EncodeEvent(eventType uint32, msg proto.Message) ([]byte, error) {
	buf := make([]byte, eventTypeSize, eventTypeSize+proto.Size(msg))
	binary.LittleEndian.PutUint32(buf, eventType)

	// Deterministic 保证同一事件重复编码字节一致，便于下游去重
	out, err := proto.MarshalOptions{Deterministic: true}.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("encode event %d (%T): %w", eventType, msg, err)
	}
	return out, nil
}

// EncodeFields 将字段表编码为 structpb.Struct 事件，值仅支持 JSON 兼容类型
func EncodeFields(eventType uint32, fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode event %d fields: %w", eventType, err)
	}
	return EncodeEvent(eventType, s)
}
