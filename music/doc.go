// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 music 封装 MiniMax 音乐生成 API (POST /v1/music_generation)。

调用方提供歌词（必填，1..3500 字符，可用 [Verse]/[Chorus] 等
标注段落）与风格描述（≤2000 字符），客户端以非流式 hex 输出
请求服务端，解码后返回音频字节。ComposeLyrics 辅助将结构化
段落拼接为合法的歌词文本。

错误通过 base_resp.status_code 传达，HTTP 200 不代表成功。
*/
package music
