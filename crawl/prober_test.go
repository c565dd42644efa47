package crawl

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeChannel struct {
	msg        []byte
	msgErr     error
	info       LastBlockInfo
	infoErr    error
	closeCalls int
}

func (c *fakeChannel) GetLatestMsg(ctx context.Context) ([]byte, error) {
	return c.msg, c.msgErr
}

func (c *fakeChannel) GetLastBlockInfo(ctx context.Context) (LastBlockInfo, error) {
	return c.info, c.infoErr
}

func (c *fakeChannel) Close() error {
	c.closeCalls++
	return nil
}

type fakeDialer struct {
	channel *fakeChannel
	dialErr error
}

func (d *fakeDialer) Dial(ctx context.Context, uri string) (Channel, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.channel, nil
}

func TestProbeDialFailureIsChannelErr(t *testing.T) {
	p := NewProber(&fakeDialer{dialErr: errors.New("connection refused")}, time.Second, nil)
	res := p.Probe(context.Background(), "mc://a.example.com:1")
	if !res.ChannelErr {
		t.Fatalf("expected ChannelErr for a dial failure")
	}
	if res.Online || res.HasLastBlock {
		t.Fatalf("expected no data on a channel-construction failure, got %+v", res)
	}
}

func TestProbePartialFailureKeepsWhatSucceeded(t *testing.T) {
	ch := &fakeChannel{msg: []byte("payload"), infoErr: errors.New("rpc timeout")}
	p := NewProber(&fakeDialer{channel: ch}, time.Second, nil)
	res := p.Probe(context.Background(), "mc://a.example.com:1")
	if res.ChannelErr {
		t.Fatalf("did not expect ChannelErr")
	}
	if !res.Online || string(res.LatestMsgPayload) != "payload" {
		t.Fatalf("expected successful GetLatestMsg to be recorded, got %+v", res)
	}
	if res.HasLastBlock {
		t.Fatalf("expected failed GetLastBlockInfo to leave HasLastBlock false")
	}
	if ch.closeCalls != 1 {
		t.Fatalf("expected channel to be closed exactly once, got %d", ch.closeCalls)
	}
}

func TestProbeBothSucceed(t *testing.T) {
	ch := &fakeChannel{msg: []byte("payload"), info: LastBlockInfo{Index: 42, MinimumFee: 100}}
	p := NewProber(&fakeDialer{channel: ch}, time.Second, nil)
	res := p.Probe(context.Background(), "mc://a.example.com:1")
	if !res.Online || !res.HasLastBlock {
		t.Fatalf("expected both RPCs to succeed, got %+v", res)
	}
	if res.LastBlock.Index != 42 || res.LastBlock.MinimumFee != 100 {
		t.Fatalf("unexpected last block info: %+v", res.LastBlock)
	}
}
