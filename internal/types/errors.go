package types

import (
	"errors"
	"fmt"
)

// 错误分类，调用方统一用 errors.Is 判断
var (
	// ErrPrecondition 本地校验失败，未发起任何远程调用
	ErrPrecondition   = errors.New("precondition failed")
	ErrNotInitialized = fmt.Errorf("%w: not initialized", ErrPrecondition)
	ErrInactive       = fmt.Errorf("%w: auction factory inactive", ErrNotInitialized) // 已初始化但被暂停，按未就绪处理

	// ErrRemoteCall 链上程序或 RPC 节点拒绝了请求
	ErrRemoteCall = errors.New("remote call rejected")
	// ErrNetwork 无法到达 RPC 节点
	ErrNetwork = errors.New("network error")

	ErrDecode   = errors.New("account decode failed")
	ErrNotFound = errors.New("account not found")
)

// RemoteCallError 携带链上/节点返回的原始信息，核心层不解析其含义
type RemoteCallError struct {
	Op      string // 发起的操作，如 place_bid
	Message string // 节点返回的原始错误描述
	Err     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrRemoteCall.Error(), e.Op, e.Message)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}

// NetworkError 传输层失败（超时、连接断开、ctx 取消），与 RemoteCallError 同等对待
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNetwork.Error(), e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Preconditionf 构造一个本地校验错误
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// IsRetryable 网络错误和远程拒绝都交给调用方决定是否重试，核心层从不自动重试
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrRemoteCall)
}
